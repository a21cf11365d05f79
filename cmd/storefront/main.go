// Package main is the storefront order intake binary.
package main

import "github.com/fairyhunter13/storefront-intake/cmd/storefront/commands"

func main() {
	commands.Execute()
}
