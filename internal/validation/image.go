package validation

import (
	"fmt"
	"strings"

	"github.com/h2non/filetype"
)

// MaxImageSize es el tamaño máximo admitido para una imagen subida.
const MaxImageSize = 5 << 20

// Tipos de imagen admitidos, verificados por bytes mágicos.
var allowedImageMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// SniffImage inspecciona los bytes mágicos del archivo y devuelve su
// MIME real. El Content-Type declarado por el cliente no se usa.
func SniffImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("el archivo no puede estar vacío")
	}
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("la imagen supera el tamaño máximo de %d MB", MaxImageSize>>20)
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", fmt.Errorf("no se pudo determinar el tipo del archivo, solo se admiten imágenes")
	}

	mime := kind.MIME.Value
	if !allowedImageMIMEs[mime] {
		return "", fmt.Errorf("tipo de archivo no admitido (%s), se admiten: %s",
			mime, strings.Join(allowedImageMIMEList(), ", "))
	}
	return mime, nil
}

func allowedImageMIMEList() []string {
	out := make([]string, 0, len(allowedImageMIMEs))
	for m := range allowedImageMIMEs {
		out = append(out, m)
	}
	return out
}
