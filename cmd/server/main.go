package main

import "github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/app"

// @title           Medical Q&A API
// @version         1.0
// @description     Question-and-answer platform where AI-drafted answers are reviewed by doctors before publication.
// @BasePath        /
func main() {
	app.Run()
}
