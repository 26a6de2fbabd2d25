package main

import "tripshare-backend/cmd"

func main() {
	cmd.Execute()
}
