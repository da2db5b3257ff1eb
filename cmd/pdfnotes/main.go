// pdfnotes is the command-line companion to the viewer: it inspects,
// exports, and prunes the notes database without opening a window.
package main

import "pdfnotes/cmd/pdfnotes/cmd"

func main() {
	cmd.Execute()
}
