// Command mdblog serves an offline-first markdown blog and its build tasks.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
