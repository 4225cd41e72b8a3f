package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"securenotes/internal/notes"
)

// sortedNotes returns the collection ordered by modification time, newest
// first. The REPL numbers notes by this order.
func (a *App) sortedNotes() []*notes.Note {
	list := make([]*notes.Note, 0, len(a.res.Notes))
	for _, n := range a.res.Notes {
		list = append(list, n)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ModifiedAt.After(list[j].ModifiedAt)
	})
	return list
}

func (a *App) list(ctx context.Context) {
	if len(a.res.Notes) == 0 {
		fmt.Println("No notes yet. Type 'new' to create one.")
		return
	}
	for i, n := range a.sortedNotes() {
		fmt.Printf("%3d. %-40s %s\n", i+1, n.Title, n.RelativeTime())
	}
}

// pickNote lists the notes and prompts for a number.
func (a *App) pickNote(verb string) (*notes.Note, error) {
	list := a.sortedNotes()
	if len(list) == 0 {
		fmt.Println("No notes yet.")
		return nil, nil
	}
	a.list(context.Background())

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Enter note number to %s", verb), os.Stdout)
	if err != nil {
		return nil, err
	}
	idx, err := strconv.Atoi(answer)
	if err != nil || idx < 1 || idx > len(list) {
		fmt.Println("No such note.")
		return nil, nil
	}
	return list[idx-1], nil
}

func (a *App) newNote(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Content", os.Stdout)
	if err != nil {
		return err
	}

	n := notes.New(title)
	n.Content = content
	a.res.Notes[n.ID] = n
	a.markDirty()

	fmt.Printf("Created %q.\n", n.Title)
	return nil
}

func (a *App) show(ctx context.Context) error {
	n, err := a.pickNote("show")
	if err != nil || n == nil {
		return err
	}
	fmt.Printf("\n%s\n", n.Title)
	fmt.Printf("Created %s, modified %s\n\n", n.FormatCreated(), n.FormatModified())
	fmt.Println(n.Content)
	return nil
}

func (a *App) edit(ctx context.Context) error {
	n, err := a.pickNote("edit")
	if err != nil || n == nil {
		return err
	}

	title, err := getSimpleText(a.reader, fmt.Sprintf("Title [%s] (empty keeps current)", n.Title), os.Stdout)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "New content (replaces the old text)", os.Stdout)
	if err != nil {
		return err
	}

	if title != "" {
		n.Title = title
	}
	n.Content = content
	n.Touch()
	a.markDirty()

	fmt.Println("Updated.")
	return nil
}

func (a *App) delete(ctx context.Context) error {
	n, err := a.pickNote("delete")
	if err != nil || n == nil {
		return err
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete %q? (yes/no)", n.Title), os.Stdout)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Println("Cancelled.")
		return nil
	}

	delete(a.res.Notes, n.ID)
	a.markDirty()
	fmt.Println("Deleted.")
	return nil
}

func (a *App) export(ctx context.Context) error {
	n, err := a.pickNote("export")
	if err != nil || n == nil {
		return err
	}

	suggested := notes.ExportFileName(n.Title)
	path, err := getSimpleText(a.reader, fmt.Sprintf("Export path [%s]", suggested), os.Stdout)
	if err != nil {
		return err
	}
	if path == "" {
		path = suggested
	}

	if err := notes.Export(n, path); err != nil {
		fmt.Println("Export failed:", err.Error())
		return err
	}
	fmt.Println("Exported to", path)
	fmt.Println("Note: the exported file is NOT encrypted.")
	return nil
}
