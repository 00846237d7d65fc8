// The main package for the site-report executable.
package main

import "github.com/JakeFAU/site-report/cmd"

func main() {
	cmd.Execute()
}
