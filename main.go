package main

import "WhatsGrapp/cmd"

func main() {
	cmd.Execute()
}
