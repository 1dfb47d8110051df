// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio/internal/imaging"
	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/site"
)

// imageFormField is the multipart field carrying an uploaded image.
const imageFormField = "image"

var errProjectNotFound = errors.New("project not found")

// PutImage handles PUT /api/admin/images/{slot} with slot profile or banner.
func (h *Handler) PutImage(w http.ResponseWriter, r *http.Request) {
	set, ok := imageSlot(chi.URLParam(r, "slot"))
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "Unknown image slot")
		return
	}
	uri, ok := h.processUpload(w, r)
	if !ok {
		return
	}

	doc, err := h.Repo.Update(r.Context(), func(doc *model.SiteDocument) error {
		set(doc, &uri)
		return nil
	})
	if !h.writeSaved(w, http.StatusOK, imagesOf(doc), err) {
		h.internalError(w, "storing image failed", err)
	}
}

// DeleteImage handles DELETE /api/admin/images/{slot}.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	set, ok := imageSlot(chi.URLParam(r, "slot"))
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "Unknown image slot")
		return
	}
	doc, err := h.Repo.Update(r.Context(), func(doc *model.SiteDocument) error {
		set(doc, nil)
		return nil
	})
	if !h.writeSaved(w, http.StatusOK, imagesOf(doc), err) {
		h.internalError(w, "removing image failed", err)
	}
}

// PutProjectImage handles PUT /api/admin/projects/{id}/image.
func (h *Handler) PutProjectImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if site.FindProject(h.Repo.Current(), id) < 0 {
		writeError(w, http.StatusNotFound, CodeNotFound, "Project not found")
		return
	}
	uri, ok := h.processUpload(w, r)
	if !ok {
		return
	}

	var project model.Project
	_, err := h.Repo.Update(r.Context(), func(doc *model.SiteDocument) error {
		i := site.FindProject(doc, id)
		if i < 0 {
			return errProjectNotFound
		}
		doc.Projects[i].Image = &uri
		project = doc.Projects[i]
		return nil
	})
	if errors.Is(err, errProjectNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Project not found")
		return
	}
	if !h.writeSaved(w, http.StatusOK, project, err) {
		h.internalError(w, "storing project image failed", err)
	}
}

func imageSlot(slot string) (func(*model.SiteDocument, *string), bool) {
	switch slot {
	case SlotProfile:
		return func(d *model.SiteDocument, v *string) { d.ProfileImage = v }, true
	case SlotBanner:
		return func(d *model.SiteDocument, v *string) { d.BannerImage = v }, true
	default:
		return nil, false
	}
}

// ImageSlots reports the current site images.
type ImageSlots struct {
	ProfileImage *string `json:"profileImage"`
	BannerImage  *string `json:"bannerImage"`
}

func imagesOf(doc *model.SiteDocument) ImageSlots {
	if doc == nil {
		return ImageSlots{}
	}
	return ImageSlots{ProfileImage: doc.ProfileImage, BannerImage: doc.BannerImage}
}

// processUpload reads the image from a multipart field or the raw body and
// turns it into a data URI.
func (h *Handler) processUpload(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Images.MaxInputBytes()+1<<20)

	var src io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile(imageFormField)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "Missing image file")
			return "", false
		}
		defer func() { _ = file.Close() }()
		src = file
	}

	uri, err := h.Images.DataURI(src)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, imaging.ErrTooLarge), errors.As(err, &maxErr):
			writeError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "Image is too large")
		case errors.Is(err, imaging.ErrUnsupportedFormat):
			writeError(w, http.StatusUnsupportedMediaType, CodeUnsupportedImage, "Use a JPEG, PNG, GIF or WebP image")
		default:
			writeError(w, http.StatusBadRequest, CodeUnsupportedImage, "The image could not be decoded")
		}
		return "", false
	}
	return uri, true
}
