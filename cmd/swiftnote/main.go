package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	a := newApp()
	if err := execute(context.Background(), a, newRootCmdWith(a)); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
