package main

import "mycelica/patchscan/cmd"

func main() {
	cmd.Execute()
}
