package main

import "github.com/qrave1/RoomRelay/cmd"

func main() {
	cmd.Execute()
}
