package utils

import (
	"os"
	"path/filepath"

	storage "github.com/supabase-community/storage-go"
)

// SupabaseConfigured reports whether object-storage upload is enabled.
func SupabaseConfigured() bool {
	return os.Getenv("SUPABASE_URL") != "" && os.Getenv("SUPABASE_KEY") != ""
}

// UploadExportFile pushes a finished export artifact to the exports
// bucket and returns its public URL.
func UploadExportFile(localPath string, contentType string) (string, error) {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")

	storageClient := storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)

	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	objectPath := "exports/" + filepath.Base(localPath)

	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}

	if _, err := storageClient.UploadFile("form_exports", objectPath, f, options); err != nil {
		return "", err
	}

	publicURL := storageClient.GetPublicUrl("form_exports", objectPath)
	return publicURL.SignedURL, nil
}
