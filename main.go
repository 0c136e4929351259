// The main package for the llmstxt-crawler executable.
package main

import (
	"github.com/piebru/llmstxt-crawler/cmd"
)

func main() {
	cmd.Execute()
}
