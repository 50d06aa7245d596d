// Command datalyzer serves the exploratory data analysis API: table
// uploads, profiling, joins with key suggestions, snapshots and exports.
package main

func main() {
	Execute()
}
