package main

import "github.com/mvp-joe/codenav/internal/cli"

func main() {
	cli.Execute()
}
