package service

import "fmt"

const (
	captionInstruction = `Describe the provided image URL in Japanese. Output the description in JSON format: {"description": string}`

	ocrInstruction = "Extract all text that is visible in the provided image. " +
		"Ignore characters that are obscured or cut off at the edges. " +
		"Respond with the extracted text only, without any commentary."
)

func translateInstruction(language string) string {
	return fmt.Sprintf("Translate the following text into %s. Respond with the translation only.", language)
}
