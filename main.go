package main

import "github.com/kozaktomas/wallproof/cmd"

func main() {
	cmd.Execute()
}
