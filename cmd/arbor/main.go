// Command arbor edits, validates, serves and monitors behavior trees.
package main

func main() {
	Execute()
}
