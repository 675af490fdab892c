package main

import "skill-swap-backend/cmd"

func main() {
	cmd.Run()
}
