package process_test

import (
	"fmt"
	"strings"

	"github.com/ygrebnov/threadkit/process"
)

// ExamplePipe feeds a line of text to wc and reads the counts back.
// Stdin is closed right after the write so wc sees end-of-input and exits.
func ExamplePipe() {
	res, err := process.Pipe(process.Command{Name: "wc"}, []byte("the quick brown fox jumped over the lazy dog\n"))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(strings.Fields(string(res.Stdout)), res.Status.Success)
	// Output: [1 9 45] true
}

// ExampleOutput captures both streams and reports the one matching the exit status.
func ExampleOutput() {
	res, err := process.Output(process.Command{
		Name:  "sh",
		Args:  []string{"-c", "echo broken 1>&2; exit 2"},
		Stdin: process.Null,
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("code=%d report=%s", res.Status.Code, res.Report())
	// Output: code=2 report=broken
}
