// SPDX-License-Identifier: Apache-2.0
package main

import (
	"bufio"
	"fmt"
	"os"

	"archc/internal/repl"
)

func main() {
	fmt.Println("archc repl — enter a function, blank line to compile, Ctrl-D to quit")
	repl.Start(bufio.NewReader(os.Stdin), os.Stdout)
}
