package main

import "formulary-manager/cmd"

func main() {
	cmd.Execute()
}
