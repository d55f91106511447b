package imaging

import (
	"encoding/base64"
	"fmt"

	"github.com/yigitozgenc/image-api/internal/domain"
)

// EncodeBase64 кодирует байты RGB в стандартный base64.
// Пустой вход всегда означает дефект выше по конвейеру, поэтому это ошибка.
func EncodeBase64(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: cannot encode empty array", domain.ErrValidation)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func DecodeBase64(text string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", domain.ErrValidation, err)
	}
	return data, nil
}
