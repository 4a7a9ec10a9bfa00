package main

import "artshowcase-backend/cmd"

func main() {
	cmd.Run()
}
