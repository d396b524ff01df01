package main

import (
	"fmt"

	"github.com/tailored-agentic-units/scopes/bundle"
	"github.com/tailored-agentic-units/scopes/persist"
	"github.com/tailored-agentic-units/scopes/presenter"
	"github.com/tailored-agentic-units/scopes/runtime"
	"github.com/tailored-agentic-units/scopes/scope"
)

var folders = []string{"inbox", "archive", "sent"}

// runCounter is a persisted integer.
type runCounter struct {
	count int
}

func (c *runCounter) bundler(key string) persist.Bundler {
	return &persist.Funcs{
		Name: key,
		Load: func(b *bundle.Bundle) {
			if v, ok := b.Int("count"); ok {
				c.count = v
			}
		},
		Save: func(b *bundle.Bundle) { b.Put("count", c.count) },
	}
}

type folderView struct {
	title string
}

// folderPicker remembers the selected folder across runs.
type folderPicker struct {
	*presenter.Presenter[*folderView]
	selected string
}

func newFolderPicker() *folderPicker {
	f := &folderPicker{selected: folders[0]}
	f.Presenter = presenter.New("folder", presenter.Hooks[*folderView]{
		Load: func(v *folderView, b *bundle.Bundle) {
			if s, ok := b.String("selected"); ok {
				f.selected = s
			}
			v.title = f.selected
		},
		Save: func(b *bundle.Bundle) { b.Put("selected", f.selected) },
	})
	return f
}

func (f *folderPicker) next() {
	for i, name := range folders {
		if name == f.selected {
			f.selected = folders[(i+1)%len(folders)]
			return
		}
	}
	f.selected = folders[0]
}

type demo struct {
	runs   *runCounter
	drafts *runCounter
	folder *folderPicker
	view   *folderView
}

// buildDemo creates:
//
//	app
//	├── mail
//	│   └── folders
//	└── settings
func buildDemo(rt *runtime.Runtime) (*demo, error) {
	d := &demo{
		runs:   &runCounter{},
		drafts: &runCounter{},
		folder: newFolderPicker(),
		view:   &folderView{},
	}

	err := rt.Do(func(root *scope.Node) error {
		if err := persist.Register(root, d.runs.bundler("runs")); err != nil {
			return err
		}

		mail, err := root.BuildChild("mail").Build()
		if err != nil {
			return err
		}
		if _, err := root.BuildChild("settings").Build(); err != nil {
			return err
		}

		group, err := persist.NewGroup(mail)
		if err != nil {
			return fmt.Errorf("mail group: %w", err)
		}
		if err := group.Add(d.drafts.bundler("drafts")); err != nil {
			return err
		}

		list, err := mail.BuildChild("folders").Build()
		if err != nil {
			return err
		}
		return d.folder.TakeView(list, d.view)
	})
	return d, err
}

func (d *demo) run(rt *runtime.Runtime) error {
	return rt.Do(func(*scope.Node) error {
		d.runs.count++
		d.drafts.count += 2
		d.folder.next()
		return nil
	})
}
