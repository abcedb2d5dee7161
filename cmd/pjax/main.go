package main

import cmd "github.com/rohmanhakim/pjax-nav/internal/cli"

func main() {
	cmd.Execute()
}
