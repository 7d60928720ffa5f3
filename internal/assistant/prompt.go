package assistant

import "fmt"

// Canned Persian turns.
const (
	Greeting     = "سلام! من دستیار خرید هوشمند شما در qbazz هستم. چطور میتونم کمکتون کنم؟"
	Apology      = "متاسفانه در حال حاضر امکان پاسخگویی وجود ندارد."
	GenericError = "متاسفانه مشکلی پیش آمده. لطفا دوباره تلاش کنید."
)

const instructionTemplate = `You are a friendly and helpful e-commerce assistant for a platform called 'qbazz', which sells products from Tehran's Grand Bazaar.
Your language is Persian (Farsi). Be concise and helpful.
Current context: %s`

// SystemInstruction embeds the visitor's current context in the assistant
// instruction. It is rebuilt for every turn.
func SystemInstruction(chatContext string) string {
	return fmt.Sprintf(instructionTemplate, chatContext)
}
