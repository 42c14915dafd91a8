package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	"bitwise74/drive-api/model"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	thumbWidth  = 320
	thumbHeight = 240
)

// ThumbMimeType is what every generated preview is encoded as.
const ThumbMimeType = "image/png"

// Thumbnailer derives small PNG previews from uploaded media. Image
// previews are rendered in-process, video previews shell out to
// ffmpeg with a bounded timeout. Every failure here is recoverable
// for the caller: an upload without a preview is still an upload.
type Thumbnailer struct {
	FFmpegPath string
	Timeout    time.Duration
}

func NewThumbnailer() *Thumbnailer {
	p := viper.GetString("ffmpeg.path")
	if p == "" {
		p = "ffmpeg"
	}

	timeout := viper.GetDuration("ffmpeg.timeout")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Thumbnailer{
		FFmpegPath: p,
		Timeout:    timeout,
	}
}

// Generate returns PNG preview bytes for an image or video buffer.
func (t *Thumbnailer) Generate(data []byte, fileType string) ([]byte, error) {
	switch fileType {
	case model.TypeImage:
		return t.fromImage(data)
	case model.TypeVideo:
		return t.fromVideo(data)
	default:
		return nil, fmt.Errorf("no thumbnail for file type %q", fileType)
	}
}

func (t *Thumbnailer) fromImage(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image, %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, thumbWidth, thumbHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, coverCrop(src.Bounds()), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail, %w", err)
	}

	return buf.Bytes(), nil
}

// coverCrop picks the largest centered region of b with the thumbnail's
// aspect ratio, so scaling fills the whole box without distortion.
func coverCrop(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()

	cropW := w
	cropH := w * thumbHeight / thumbWidth
	if cropH > h {
		cropH = h
		cropW = h * thumbWidth / thumbHeight
	}

	x0 := b.Min.X + (w-cropW)/2
	y0 := b.Min.Y + (h-cropH)/2

	return image.Rect(x0, y0, x0+cropW, y0+cropH)
}

func (t *Thumbnailer) fromVideo(data []byte) ([]byte, error) {
	temp, err := os.CreateTemp("", "thumb-src-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file, %w", err)
	}
	defer os.Remove(temp.Name())
	defer temp.Close()

	if _, err := temp.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write temporary file, %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.Timeout)
	defer cancel()

	now := time.Now()

	// -ss before the input seeks to the first second before the file
	// opens (uses key-frame seeking so that it's faster)
	cmd := exec.CommandContext(ctx, t.FFmpegPath,
		"-loglevel", "error",
		"-ss", "00:00:01",
		"-i", temp.Name(),
		"-frames:v", "1",
		"-s", fmt.Sprintf("%dx%d", thumbWidth, thumbHeight),
		"-f", "image2",
		"-c:v", "png",
		"pipe:1",
	)

	var stdOut, stdErr bytes.Buffer
	cmd.Stdout = &stdOut
	cmd.Stderr = &stdErr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffmpeg timed out after %s", t.Timeout)
		}

		return nil, fmt.Errorf("ffmpeg failed, %w (%s)", err, stdErr.String())
	}

	if stdOut.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output (%s)", stdErr.String())
	}

	zap.L().Debug("Finished creating thumbnail", zap.Duration("took", time.Since(now)))

	return stdOut.Bytes(), nil
}
