package main

import "similarimages/cmd"

func main() {
	cmd.Execute()
}
