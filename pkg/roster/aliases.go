package roster

// DefaultAliases is the maintained mapping from known noisy source
// spellings to canonical roster names: raw API model IDs, dropped vendor
// prefixes, spacing and dash variants, and source-specific quirks. Keys are
// matched case-insensitively after cleanup. Boards may extend the table via
// config; merged tables always build a fresh Resolver.
func DefaultAliases() map[string]string {
	return map[string]string{
		// Claude without the vendor prefix, and raw API IDs.
		"opus 4.6":          "Claude Opus 4.6",
		"opus 4.5":          "Claude Opus 4.5",
		"sonnet 4.6":        "Claude Sonnet 4.6",
		"sonnet 4.5":        "Claude Sonnet 4.5",
		"claude-opus-4-6":   "Claude Opus 4.6",
		"claude-opus-4-5":   "Claude Opus 4.5",
		"claude-sonnet-4-6": "Claude Sonnet 4.6",
		"claude-sonnet-4-5": "Claude Sonnet 4.5",
		"claude haiku 4.5":  "Claude 3 Haiku",
		"claude 4.5 haiku":  "Claude 3 Haiku",

		// OpenAI spacing and dash variants.
		"gpt 5.2":           "GPT-5.2",
		"gpt5.2":            "GPT-5.2",
		"gpt 5.1":           "GPT-5.1",
		"gpt5.1":            "GPT-5.1",
		"gpt-5.2 codex":     "GPT-5.2",
		"gpt-5-codex":       "GPT-5.2",
		"gpt 5 mini":        "GPT-5 mini",
		"gpt5 mini":         "GPT-5 mini",
		"chatgpt-4o-latest": "GPT-4o",
		"gpt-4o-2024-11-20": "GPT-4o",
		"gpt-4.5-preview":   "GPT-4.5",
		"gpt-4 turbo":       "GPT-4",
		"gpt-4-turbo":       "GPT-4",
		"gpt oss 120b":      "gpt-oss-120b",

		// OpenAI o-series.
		"openai o3":         "o3",
		"o3 mini":           "o3-mini",
		"openai o3-mini":    "o3-mini",
		"o4 mini":           "o4-mini",
		"openai o4-mini":    "o4-mini",
		"openai o1-preview": "o1-preview",
		"openai o1-mini":    "o1-mini",

		// Google Gemini.
		"gemini-3-pro":     "Gemini 3 Pro",
		"gemini-3-flash":   "Gemini 3 Flash",
		"gemini-2.5-pro":   "Gemini 2.5 Pro",
		"gemini flash 3.0": "Gemini 3 Flash",
		"gemini-3.0-flash": "Gemini 3 Flash",

		// xAI Grok.
		"grok-4":      "Grok 4.20",
		"grok 4":      "Grok 4.20",
		"grok4":       "Grok 4.20",
		"grok-4.20":   "Grok 4.20",
		"grok 3":      "Grok 3 Beta",
		"grok-3":      "Grok 3 Beta",
		"grok-3-beta": "Grok 3 Beta",

		// DeepSeek.
		"deepseek v3":      "DeepSeek-V3",
		"deepseekv3":       "DeepSeek-V3",
		"deepseek-r1":      "DeepSeek R1",
		"deepseek-r1-zero": "DeepSeek R1",

		// Alibaba Qwen.
		"qwen3-max":    "Qwen3",
		"qwen 3":       "Qwen3",
		"qwen3 30b a3b": "Qwen3",
		"qwq 32b":      "qwq-32b",

		// Moonshot Kimi.
		"kimi-k2-thinking": "Kimi K2.5",
		"kimi k2 thinking": "Kimi K2.5",
		"kimi-k2.5":        "Kimi K2.5",

		// MiniMax.
		"minimax m1 40k": "MiniMax M1",
		"minimax-m1-40k": "MiniMax M1",

		// Mistral. Magistral is Mistral.
		"magistral medium": "Mistral Large",
		"mistral-large":    "Mistral Large",
		"devstral":         "Devstral 2",
		"devstral (2512)":  "Devstral 2",

		// Cohere.
		"command r+": "Cohere Command R+",
		"command-r+": "Cohere Command R+",

		// Meta Llama.
		"llama-4-maverick":            "Llama 4 Maverick",
		"llama 4 maverick instruct":   "Llama 4 Maverick",
		"meta-llama/llama-4-maverick": "Llama 4 Maverick",

		// Misc quirks.
		"intellect 3":        "intellect-3",
		"nova-pro-v1:0":      "Amazon Nova Lite",
		"amazon/nova-pro-v1:0": "Amazon Nova Lite",
	}
}

// DefaultCompanies maps canonical names to their owning organization,
// best-effort, used when a discovered entity is first admitted.
func DefaultCompanies() map[string]string {
	return map[string]string{
		"Claude Opus 4.6":   "Anthropic",
		"Claude Opus 4.5":   "Anthropic",
		"Claude Sonnet 4.6": "Anthropic",
		"Claude Sonnet 4.5": "Anthropic",
		"Claude 3 Haiku":    "Anthropic",
		"GPT-5.2":           "OpenAI",
		"GPT-5.1":           "OpenAI",
		"GPT-5":             "OpenAI",
		"GPT-5 mini":        "OpenAI",
		"GPT-4o":            "OpenAI",
		"GPT-4.5":           "OpenAI",
		"GPT-4":             "OpenAI",
		"o3":                "OpenAI",
		"o3-mini":           "OpenAI",
		"o4-mini":           "OpenAI",
		"gpt-oss-120b":      "OpenAI",
		"Gemini 3 Pro":      "Google",
		"Gemini 3 Flash":    "Google",
		"Gemini 2.5 Pro":    "Google",
		"Grok 4.20":         "xAI",
		"Grok 4.1":          "xAI",
		"Grok 3 Beta":       "xAI",
		"DeepSeek-V3":       "DeepSeek",
		"DeepSeek V3.2":     "DeepSeek",
		"DeepSeek R1":       "DeepSeek",
		"Qwen3":             "Alibaba",
		"Qwen3-Coder":       "Alibaba",
		"qwq-32b":           "Alibaba",
		"Kimi K2.5":         "Moonshot AI",
		"MiniMax M2":        "MiniMax",
		"MiniMax M1":        "MiniMax",
		"Mistral Large":     "Mistral AI",
		"Devstral 2":        "Mistral AI",
		"Llama 4 Maverick":  "Meta",
		"Cohere Command R+": "Cohere",
		"Amazon Nova Lite":  "Amazon",
		"GLM-5":             "Zhipu AI",
		"GLM-4":             "Zhipu AI",
	}
}
