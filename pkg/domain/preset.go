package domain

// CustomPromptName は単発生成の結果に付ける表示名です。
const CustomPromptName = "Custom Prompt"

// Preset はワンクリックで選べるシーンのプロンプトです。
type Preset struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// DefaultPresets は起動時に固定される5件のプリセットです。並び順がバッチ生成の順序になります。
var DefaultPresets = []Preset{
	{
		Name:   "Studio White",
		Prompt: "Place the product on a seamless pure white studio backdrop with soft, even key lighting and a subtle contact shadow.",
	},
	{
		Name:   "Marble Countertop",
		Prompt: "Place the product on a polished white marble kitchen countertop with warm morning sunlight coming from a window on the left.",
	},
	{
		Name:   "Outdoor Nature",
		Prompt: "Place the product on a mossy rock in a lush forest clearing with dappled natural sunlight and a softly blurred background.",
	},
	{
		Name:   "Cozy Living Room",
		Prompt: "Place the product on a wooden coffee table in a cozy, modern living room with warm ambient lamp light in the evening.",
	},
	{
		Name:   "Luxury Dark",
		Prompt: "Place the product on a glossy black pedestal against a dark gradient background with dramatic rim lighting and gold accents.",
	},
}

// Presets は DefaultPresets のコピーを返します。
func Presets() []Preset {
	out := make([]Preset, len(DefaultPresets))
	copy(out, DefaultPresets)
	return out
}
