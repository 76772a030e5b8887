package main

import "github.com/ValentinKolb/oDB/cmd"

func main() {
	cmd.Execute()
}
