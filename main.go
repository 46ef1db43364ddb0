package main

import "github.com/St3phaneM1chon/peptide-backup/cmd"

func main() {
	cmd.Execute()
}
