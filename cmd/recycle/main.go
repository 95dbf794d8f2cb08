package main

import "recycle-backend/cmd"

func main() {
	cmd.Execute()
}
