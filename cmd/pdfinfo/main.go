// pdfinfo reads a PDF file and prints its version, trailer references,
// and page count.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/inkwell-labs/pdfkit/document"
	"github.com/inkwell-labs/pdfkit/pdfio"
	"github.com/inkwell-labs/pdfkit/pdfvalue"
)

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func main() {
	flag.Parse()
	input := flag.Arg(0)
	if input == "" {
		fmt.Fprintln(os.Stderr, "usage: pdfinfo <file.pdf>")
		os.Exit(2)
	}

	r, err := pdfio.OpenFile(input)
	check(err)
	defer r.Close()

	doc, err := document.Open(r)
	check(err)

	fmt.Printf("Version: %s\n", doc.Version)
	fmt.Printf("Xref entries: %d\n", doc.Table.Len())
	if doc.Table.Root != nil {
		fmt.Printf("Root: %d %d R\n", doc.Table.Root.Obj, doc.Table.Root.Gen)
	}

	pages, err := doc.Flatten()
	check(err)
	fmt.Printf("Pages: %d\n", len(pages))

	if info, ok, err := doc.Info(); err == nil && ok {
		if title, ok := info.Get("Title"); ok {
			fmt.Printf("Title: %s\n", textOf(title))
		}
	}
}

func textOf(v pdfvalue.Value) string {
	switch s := v.(type) {
	case pdfvalue.LiteralString:
		if t, err := pdfvalue.TextString([]byte(s)); err == nil {
			return t
		}
	case pdfvalue.HexString:
		if t, err := pdfvalue.TextString([]byte(s)); err == nil {
			return t
		}
	}
	return ""
}
