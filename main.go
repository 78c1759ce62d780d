package main

import "github.com/Tiliavir/track/cmd"

func main() {
	cmd.Execute()
}
