package main

import "github.com/campus-hub/campus-services/cmd"

func main() {
	cmd.Execute()
}
