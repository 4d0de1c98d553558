// regctl is the command-line front end of the register code generator.
package main

func main() {
	execute()
}
