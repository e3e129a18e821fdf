package main

import "cratedoc/cmd"

func main() {
	cmd.Execute()
}
