package main

import "github.com/nexthealth/careplatform/cmd"

func main() {
	cmd.Execute()
}
