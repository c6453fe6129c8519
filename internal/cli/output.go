package cli

import (
	"fmt"
	"io"

	"daily-todo/internal/history"
	"daily-todo/internal/model"
)

type textNotifier struct {
	out io.Writer
	err io.Writer
}

func (n *textNotifier) Notify(msg string) { fmt.Fprintln(n.out, msg) }

func (n *textNotifier) Alert(msg string, err error) {
	fmt.Fprintf(n.err, "%s: %v\n", msg, err)
}

type textPresenter struct {
	out io.Writer
}

func (p *textPresenter) Show(cards []history.Card) {
	if len(cards) == 0 {
		fmt.Fprintln(p.out, "No snapshots yet.")
		return
	}
	for i, card := range cards {
		if i > 0 {
			fmt.Fprintln(p.out)
		}
		fmt.Fprintf(p.out, "#%d %s\n", card.SnapshotID, card.Title)
		if len(card.Items) == 0 {
			fmt.Fprintln(p.out, "  (empty)")
		}
		for _, item := range card.Items {
			fmt.Fprintf(p.out, "  %s %s\n", checkbox(bool(item.Completed)), item.Text)
		}
	}
}

func (p *textPresenter) Hide() {}

func printTasks(out io.Writer, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks yet.")
		return
	}
	for i, t := range tasks {
		fmt.Fprintf(out, "%d. %s %s\n", i+1, checkbox(t.Completed), t.Title)
	}
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}
