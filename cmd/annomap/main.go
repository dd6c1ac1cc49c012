package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"annomap/internal/tui"
)

func main() {
	// bubbletea owns the terminal; log to a file only when asked to
	if path := os.Getenv("ANNOMAP_LOG"); path != "" {
		f, err := tea.LogToFile(path, "annomap")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	var m tea.Model
	if len(os.Args) > 1 {
		m = tui.NewWithPath(os.Args[1])
	} else {
		m = tui.New()
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		log.Printf("run: %v", err)
		fmt.Fprintln(os.Stderr, "annomap:", err)
		os.Exit(1)
	}
}
