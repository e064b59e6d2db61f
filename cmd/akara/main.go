package main

import "akara-desktop/internal/cli"

func main() {
	cli.Execute()
}
