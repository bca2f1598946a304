package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/hitoshi/blogconsole/internal/model"
	"github.com/hitoshi/blogconsole/internal/upload"
)

// 通知のタイトル。
const (
	TitleSuccess        = "Success"
	TitleError          = "Error"
	TitleUploadSuccess  = "Upload Successful"
	TitleUploadFailed   = "Upload Failed"
	uploadSuccessDetail = "Image uploaded successfully"
	uploadFailedDetail  = "Failed to upload image. Please try again."
)

// Notifier は画面が利用する通知の発行先。
type Notifier interface {
	Success(title, description string) uint64
	Error(title, description string) uint64
}

// uploadFunc は画像アップロード関数。
type uploadFunc func(ctx context.Context, filename string, content io.Reader) (string, error)

// changeImage はプレビューを表示してからアップロードし、結果に応じて確定または復元する。
// 失敗時は最後に確定した画像に戻す。
func changeImage(
	ctx context.Context,
	field *upload.ImageField,
	notifier Notifier,
	logger *slog.Logger,
	filename string,
	data []byte,
	fn uploadFunc,
) error {
	field.Stage(upload.PreviewFromBytes(data))

	url, err := fn(ctx, filename, bytes.NewReader(data))
	if err != nil {
		field.Restore()
		logger.Warn("image upload failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		notifier.Error(TitleUploadFailed, model.MessageOf(err, uploadFailedDetail))
		return err
	}

	field.Commit(url)
	notifier.Success(TitleUploadSuccess, uploadSuccessDetail)
	return nil
}
