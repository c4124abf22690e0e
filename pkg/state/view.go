package state

import (
	"strings"

	"github.com/shouni/product-scene-studio/pkg/domain"
)

// ImageView は画面に表示する1枚分の画像です。
type ImageView struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	DataURL   string `json:"dataUrl"`
	FileName  string `json:"fileName,omitempty"`
}

// View は State から導出される表示用の値です。
type View struct {
	OriginalImage    *ImageView  `json:"originalImage,omitempty"`
	GeneratedImages  []ImageView `json:"generatedImages"`
	Prompt           string      `json:"prompt"`
	IsLoading        bool        `json:"isLoading"`
	Error            string      `json:"error,omitempty"`
	CanGenerate      bool        `json:"canGenerate"`
	CanGenerateBatch bool        `json:"canGenerateBatch"`
}

// Project は State を View に変換する純粋関数です。
func Project(s State) View {
	v := View{
		Prompt:           s.Prompt,
		IsLoading:        s.IsLoading,
		Error:            s.Error,
		CanGenerate:      canGenerate(s),
		CanGenerateBatch: canGenerateBatch(s),
	}

	if s.OriginalImage != nil {
		v.OriginalImage = &ImageView{
			Name:      s.OriginalImage.FileName,
			MediaType: s.OriginalImage.Image.MediaType,
			DataURL:   s.OriginalImage.Image.DataURL(),
		}
	}

	if s.GeneratedImages != nil {
		v.GeneratedImages = make([]ImageView, 0, len(s.GeneratedImages))
		for _, g := range s.GeneratedImages {
			v.GeneratedImages = append(v.GeneratedImages, ImageView{
				Name:      g.Name,
				MediaType: g.Image.MediaType,
				DataURL:   g.Image.DataURL(),
				FileName:  g.FileName(),
			})
		}
	}

	return v
}

func canGenerate(s State) bool {
	return s.OriginalImage != nil && strings.TrimSpace(s.Prompt) != "" && !s.IsLoading
}

func canGenerateBatch(s State) bool {
	return s.OriginalImage != nil && !s.IsLoading
}

// GeneratedImage は index 番目の生成画像を返します。
func (s State) GeneratedImage(index int) (domain.GeneratedImage, bool) {
	if index < 0 || index >= len(s.GeneratedImages) {
		return domain.GeneratedImage{}, false
	}
	return s.GeneratedImages[index], true
}
