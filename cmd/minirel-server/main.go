package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"minirel/internal/engine"
	"minirel/internal/sql"
	"minirel/internal/storage"
	"minirel/internal/storage/heapstore"
	"minirel/internal/storage/memstore"
)

func main() {
	dir := flag.String("dir", "data", "directory for table files")
	mem := flag.Bool("mem", false, "use the in-memory store instead of table files")
	flag.Parse()

	var store storage.Store
	if *mem {
		store = memstore.New()
		fmt.Println("minirel: in-memory store (nothing will be saved)")
	} else {
		store = heapstore.New(*dir)
		fmt.Printf("minirel: table files in %s\n", *dir)
	}

	eng := engine.New(store)

	prompt := color.New(color.FgCyan)
	errText := color.New(color.FgRed)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt.Fprint(os.Stdout, "SQL> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
			break
		}

		stmt, err := sql.Parse(line)
		if err != nil {
			errText.Fprintf(os.Stderr, "parse error: %v\n", err)
			continue
		}

		res, err := eng.Execute(stmt)
		if err != nil {
			errText.Fprintf(os.Stderr, "%v\n", err)
			continue
		}
		fmt.Println(res.String())
	}

	if err := scanner.Err(); err != nil {
		errText.Fprintf(os.Stderr, "read error: %v\n", err)
		os.Exit(1)
	}
}
