package main

import "github.com/nikhilsahni7/huddle-signal/cmd"

func main() {
	cmd.Execute()
}
