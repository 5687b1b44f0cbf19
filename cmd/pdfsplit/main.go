// pdfsplit extracts a single page from a PDF file into a new,
// self-contained PDF file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/inkwell-labs/pdfkit/document"
	"github.com/inkwell-labs/pdfkit/pdfio"
)

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func main() {
	page := flag.Int("page", 1, "1-based page number to extract")
	out := flag.String("out", "", "output file path (defaults to <input>.page<N>.pdf)")
	flag.Parse()
	input := flag.Arg(0)
	if input == "" {
		fmt.Fprintln(os.Stderr, "usage: pdfsplit -page N <file.pdf>")
		os.Exit(2)
	}

	outPath := *out
	if outPath == "" {
		outPath = fmt.Sprintf("%s.page%d.pdf", input, *page)
	}

	r, err := pdfio.OpenFile(input)
	check(err)
	defer r.Close()

	doc, err := document.Open(r)
	check(err)

	extracted, err := doc.Extract(*page)
	check(err)

	data, err := extracted.Serialize()
	check(err)

	check(os.WriteFile(outPath, data, 0o644))
	fmt.Printf("wrote %s (%d bytes)\n", outPath, len(data))
}
