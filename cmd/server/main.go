package main

import (
	"os"

	"symptom-checker/backend/internal/app"
)

// @title        Symptom Checker API
// @version      1.0
// @description  Relays chat turns to an Azure OpenAI chat deployment and image prompts to an image deployment.
// @BasePath     /api
func main() {
	os.Exit(app.Run())
}
