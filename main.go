package main

import "github.com/sfomuseum/cocoa-www-geotag-sfomuseum/cmd"

// Version can be set during build with -ldflags
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
