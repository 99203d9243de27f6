package main

import "soundcatalog/cmd"

func main() {
	cmd.Execute()
}
