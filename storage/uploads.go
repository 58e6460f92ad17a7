package storage

import (
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/peaceghost-hub/EasyAccomodation/config"
)

// Payment-proof images go to Cloudinary via a signed upload. Configuration
// comes from CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET
// and the optional CLOUDINARY_FOLDER.

var ErrUploadFailed = errors.New("image upload failed")

// UploadProofImage uploads a base64-encoded image under the given public ID
// and returns the hosted URL. The caller records only the returned reference;
// the booking/verification core never touches file bytes.
func UploadProofImage(base64Src string, publicID string) (string, error) {
	if base64Src == "" {
		return "", ErrUploadFailed
	}

	payload := base64Src
	if i := strings.Index(base64Src, ","); i != -1 {
		payload = base64Src[i+1:]
	}

	cloudName := config.C.CloudinaryCloudName
	apiKey := config.C.CloudinaryAPIKey
	apiSecret := config.C.CloudinaryAPISecret
	folder := config.C.CloudinaryFolder

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return "", fmt.Errorf("%w: missing Cloudinary credentials", ErrUploadFailed)
	}

	endpoint := "https://api.cloudinary.com/v1_1/" + cloudName + "/image/upload"

	finalPublicID := publicID
	if folder != "" {
		finalPublicID = folder + "/" + publicID
	}

	form := url.Values{}
	form.Add("file", "data:image/jpeg;base64,"+payload)
	form.Add("api_key", apiKey)
	form.Add("public_id", finalPublicID)

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	form.Add("timestamp", timestamp)

	// Cloudinary signed uploads require a SHA1 over the sorted params + secret
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", finalPublicID, timestamp, apiSecret)
	form.Add("signature", fmt.Sprintf("%x", sha1.Sum([]byte(signatureString))))

	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrUploadFailed, res.StatusCode, string(body))
	}

	var cloudRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &cloudRes); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if cloudRes.Error.Message != "" {
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, cloudRes.Error.Message)
	}

	out := cloudRes.SecureURL
	if out == "" {
		out = cloudRes.URL
	}
	if out == "" {
		return "", ErrUploadFailed
	}
	return out, nil
}
