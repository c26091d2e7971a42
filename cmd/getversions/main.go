package main

import "github.com/dbsmedya/getversions/cmd/getversions/cmd"

func main() {
	cmd.Execute()
}
