package controllers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cipherdrop/cipherdrop/artifacts"
	"github.com/cipherdrop/cipherdrop/authenticator"
	"github.com/cipherdrop/cipherdrop/challenges"
	"github.com/cipherdrop/cipherdrop/config"
	"github.com/cipherdrop/cipherdrop/cryptobox"
	"github.com/cipherdrop/cipherdrop/models"
	"github.com/cipherdrop/cipherdrop/storage"
	"github.com/cipherdrop/cipherdrop/utils"
)

// identifierRetries bounds how many fresh identifiers an upload tries after
// store conflicts before giving up.
const identifierRetries = 3

// qrSize is the pixel edge of the QR image in the issuance response.
const qrSize = 256

// ShareController orchestrates the anonymous upload and download flows.
type ShareController struct {
	cfg        config.AppConfig
	codec      *cryptobox.Codec
	auth       *authenticator.Authenticator
	artifacts  *artifacts.Store
	blobs      storage.BlobStore
	challenges *challenges.Store
	issuer     *challenges.Issuer
	limiter    *utils.AttemptLimiter
}

// NewShareController wires the controller's collaborators.
func NewShareController(
	cfg config.AppConfig,
	codec *cryptobox.Codec,
	auth *authenticator.Authenticator,
	artifactStore *artifacts.Store,
	blobStore storage.BlobStore,
	challengeStore *challenges.Store,
	issuer *challenges.Issuer,
	limiter *utils.AttemptLimiter,
) *ShareController {
	return &ShareController{
		cfg:        cfg,
		codec:      codec,
		auth:       auth,
		artifacts:  artifactStore,
		blobs:      blobStore,
		challenges: challengeStore,
		issuer:     issuer,
		limiter:    limiter,
	}
}

// MintChallenge returns a fresh challenge token and its image URL.
func (s *ShareController) MintChallenge(ctx *gin.Context) {
	ch, err := s.issuer.Generate(ctx.Request.Context())
	if err != nil {
		utils.Sugar.Errorw("mint challenge failed", "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to generate captcha")
		return
	}
	utils.Success(ctx, challengePayload(ch))
}

// ChallengeImage streams the puzzle PNG behind a minted token.
func (s *ShareController) ChallengeImage(ctx *gin.Context) {
	token := strings.TrimSpace(ctx.Param("token"))
	ch, err := s.challenges.Get(ctx.Request.Context(), token)
	if err != nil {
		if errors.Is(err, challenges.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40011, "captcha not found or already used")
			return
		}
		utils.Sugar.Errorw("load challenge failed", "token", token, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load captcha")
		return
	}
	png, err := s.issuer.Render(ch.Answer)
	if err != nil {
		utils.Sugar.Errorw("render challenge failed", "token", token, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to render captcha")
		return
	}
	// A new token means a new puzzle; the image must never come from cache.
	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "image/png", png)
}

// Upload runs the upload pipeline: captcha verification, archive checks,
// encrypt, persist, one-time secret issuance. Every failure response carries
// a freshly minted challenge so the page can retry without a reload.
func (s *ShareController) Upload(ctx *gin.Context) {
	rctx := ctx.Request.Context()

	token := strings.TrimSpace(ctx.PostForm("challenge_token"))
	answer := strings.TrimSpace(ctx.PostForm("challenge_answer"))
	if token == "" || answer == "" {
		s.failWithChallenge(ctx, http.StatusBadRequest, 40010, "captcha verification required")
		return
	}

	ch, err := s.challenges.Get(rctx, token)
	if err != nil {
		if errors.Is(err, challenges.ErrNotFound) {
			s.failWithChallenge(ctx, http.StatusBadRequest, 40011, "captcha not found or already used")
			return
		}
		utils.Sugar.Errorw("load challenge failed", "token", token, "error", err)
		s.failWithChallenge(ctx, http.StatusInternalServerError, 50010, "upload failed, please retry")
		return
	}

	// The challenge dies on this attempt no matter how it turns out.
	if err := s.challenges.Delete(rctx, token); err != nil {
		utils.Sugar.Warnw("consume challenge failed", "token", token, "error", err)
	}

	if ch.Expired(time.Now(), s.issuer.Expiry()) {
		s.failWithChallenge(ctx, http.StatusBadRequest, 40012, "captcha expired")
		return
	}
	if !challenges.Match(answer, ch.Answer) {
		s.failWithChallenge(ctx, http.StatusBadRequest, 40013, "incorrect captcha answer")
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			s.failWithChallenge(ctx, http.StatusBadRequest, 40032,
				fmt.Sprintf("file exceeds the %dMB limit", s.cfg.MaxUploadSizeMB))
			return
		}
		s.failWithChallenge(ctx, http.StatusBadRequest, 40030, "no file uploaded")
		return
	}
	if !s.allowedArchive(file.Header.Get("Content-Type")) {
		s.failWithChallenge(ctx, http.StatusBadRequest, 40031, "only archive files are accepted")
		return
	}
	if file.Size > s.cfg.MaxUploadBytes() {
		s.failWithChallenge(ctx, http.StatusBadRequest, 40032,
			fmt.Sprintf("file exceeds the %dMB limit", s.cfg.MaxUploadSizeMB))
		return
	}

	plain, err := readMultipartFile(file)
	if err != nil {
		utils.Sugar.Errorw("read upload failed", "error", err)
		s.failWithChallenge(ctx, http.StatusInternalServerError, 50010, "upload failed, please retry")
		return
	}

	blob, err := s.codec.Encrypt(plain)
	if err != nil {
		utils.Sugar.Errorw("encrypt upload failed", "error", err)
		s.failWithChallenge(ctx, http.StatusInternalServerError, 50010, "upload failed, please retry")
		return
	}

	artifact, secret, err := s.persistArtifact(rctx, utils.SanitizeFilename(file.Filename), blob)
	if err != nil {
		utils.Sugar.Errorw("persist artifact failed", "error", err)
		s.failWithChallenge(ctx, http.StatusInternalServerError, 50010, "upload failed, please retry")
		return
	}

	// The secret leaves the process exactly once, in this response.
	qr := ""
	if png, err := secret.QRPNG(qrSize); err == nil {
		qr = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	} else {
		utils.Sugar.Warnw("render qr failed", "identifier", artifact.Identifier, "error", err)
	}

	utils.Success(ctx, gin.H{
		"identifier":   artifact.Identifier,
		"display_name": artifact.DisplayName,
		"secret":       secret.Secret(),
		"otpauth_url":  secret.URL(),
		"qr_png":       qr,
		"download_url": s.cfg.PublicBaseURL + "/download/" + artifact.Identifier,
	})
}

// DownloadPage serves the download form for a well-formed identifier.
func (s *ShareController) DownloadPage(ctx *gin.Context) {
	id := artifacts.Normalize(ctx.Param("identifier"))
	if !artifacts.ValidIdentifier(id) {
		utils.Error(ctx, http.StatusBadRequest, 40020, "malformed artifact identifier")
		return
	}
	ctx.File("static/download.html")
}

// Download verifies identifier plus rotating code and streams the decrypted
// original bytes.
func (s *ShareController) Download(ctx *gin.Context) {
	rctx := ctx.Request.Context()

	id := artifacts.Normalize(ctx.Param("identifier"))
	if !artifacts.ValidIdentifier(id) {
		utils.Error(ctx, http.StatusBadRequest, 40020, "malformed artifact identifier")
		return
	}

	code := strings.TrimSpace(ctx.PostForm("code"))
	if code == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "download code required")
		return
	}

	artifact, err := s.artifacts.FindByIdentifier(rctx, id)
	if err != nil {
		if errors.Is(err, artifacts.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "artifact not found")
			return
		}
		utils.Sugar.Errorw("load artifact failed", "identifier", id, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50011, "download failed, please retry")
		return
	}

	ip := ctx.ClientIP()
	if s.limiter.Blocked(ip, id) {
		utils.Error(ctx, http.StatusTooManyRequests, 42930, "too many failed code attempts, try again later")
		return
	}

	if !s.auth.Verify(artifact.TOTPSecret, code) {
		s.limiter.RecordFailure(ip, id)
		utils.Error(ctx, http.StatusUnauthorized, 40130, "invalid download code")
		return
	}
	s.limiter.Reset(ip, id)

	blob, err := s.blobs.Load(rctx, id)
	if err != nil {
		utils.Sugar.Errorw("load blob failed", "identifier", id, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50011, "download failed, please retry")
		return
	}

	plain, err := s.codec.Decrypt(blob)
	if err != nil {
		utils.Sugar.Errorw("decrypt blob failed", "identifier", id, "error", err)
		if errors.Is(err, cryptobox.ErrDecrypt) {
			utils.Error(ctx, http.StatusInternalServerError, 50040,
				"decryption failed: the service encryption key may have changed since upload")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50011, "download failed, please retry")
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": artifact.DisplayName})
	if disposition == "" {
		disposition = "attachment"
	}
	ctx.Header("Content-Disposition", disposition)
	ctx.Data(http.StatusOK, "application/octet-stream", plain)
}

// failWithChallenge rejects the upload and mints a replacement challenge so
// the client can try again without another page load.
func (s *ShareController) failWithChallenge(ctx *gin.Context, status, code int, message string) {
	ch, err := s.issuer.Generate(ctx.Request.Context())
	if err != nil {
		utils.Sugar.Errorw("regenerate challenge failed", "error", err)
		utils.Error(ctx, status, code, message)
		return
	}
	utils.ErrorWithData(ctx, status, code, message, gin.H{"challenge": challengePayload(ch)})
}

func (s *ShareController) allowedArchive(contentType string) bool {
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	for _, allowed := range s.cfg.AllowedArchiveTypes {
		if strings.EqualFold(mediaType, allowed) {
			return true
		}
	}
	return false
}

// persistArtifact writes the blob and inserts its record as one logical unit.
// Identifier collisions retry with fresh material; a record failure removes
// the blob so no orphan survives a reported failure.
func (s *ShareController) persistArtifact(ctx context.Context, displayName string, blob []byte) (*models.Artifact, authenticator.IssuedSecret, error) {
	for attempt := 0; attempt < identifierRetries; attempt++ {
		id, err := artifacts.NewIdentifier()
		if err != nil {
			return nil, authenticator.IssuedSecret{}, err
		}
		secret, err := s.auth.GenerateSecret(id)
		if err != nil {
			return nil, authenticator.IssuedSecret{}, err
		}
		if err := s.blobs.Save(ctx, id, blob); err != nil {
			return nil, authenticator.IssuedSecret{}, err
		}

		artifact := &models.Artifact{
			Identifier:  id,
			DisplayName: displayName,
			TOTPSecret:  secret.Secret(),
		}
		err = s.artifacts.Create(ctx, artifact)
		if err == nil {
			return artifact, secret, nil
		}
		if delErr := s.blobs.Delete(ctx, id); delErr != nil {
			utils.Sugar.Warnw("cleanup blob after record failure", "identifier", id, "error", delErr)
		}
		if errors.Is(err, artifacts.ErrConflict) {
			continue
		}
		return nil, authenticator.IssuedSecret{}, err
	}
	return nil, authenticator.IssuedSecret{}, fmt.Errorf("exhausted %d identifier attempts", identifierRetries)
}

func challengePayload(ch *models.Challenge) gin.H {
	return gin.H{
		"token":     ch.Token,
		"image_url": "/challenge/" + ch.Token,
	}
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
