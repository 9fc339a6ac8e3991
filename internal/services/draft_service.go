package services

import (
	"context"
	"errors"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/giftlist-api/internal/blob"
	"github.com/gravadigital/giftlist-api/internal/domain/common"
	"github.com/gravadigital/giftlist-api/internal/domain/draft"
	"github.com/gravadigital/giftlist-api/internal/domain/list"
	"github.com/gravadigital/giftlist-api/internal/domain/user"
	"github.com/gravadigital/giftlist-api/internal/logger"
	"github.com/gravadigital/giftlist-api/internal/storage"
	"github.com/gravadigital/giftlist-api/internal/validation"
)

// DraftService is the Draft Manager: it stages items per (owner, list) and
// promotes them into the list once paid for.
type DraftService struct {
	drafts  storage.DraftRepository
	lists   storage.ListRepository
	blobs   blob.Store
	uploads UploadPolicy
	log     *log.Logger
}

// NewDraftService creates a new draft service
func NewDraftService(drafts storage.DraftRepository, lists storage.ListRepository, blobs blob.Store, uploads UploadPolicy) *DraftService {
	return &DraftService{
		drafts:  drafts,
		lists:   lists,
		blobs:   blobs,
		uploads: uploads,
		log:     logger.Service("draft"),
	}
}

func validateDraftKey(ownerEmail, listName, draftName string) error {
	if err := validation.ValidateListKey(ownerEmail, listName); err != nil {
		return err
	}
	if err := validation.ValidateRequired(draftName, "draftName"); err != nil {
		return err
	}
	if draftName != draft.NameFor(listName) {
		return common.InvalidArgument("draftName does not belong to listName")
	}
	return nil
}

// FetchDraft returns the staged content and status
func (s *DraftService) FetchDraft(ctx context.Context, ownerEmail, listName, draftName string) (*draft.View, error) {
	if err := validateDraftKey(ownerEmail, listName, draftName); err != nil {
		return nil, err
	}

	d, err := s.drafts.Get(ctx, ownerEmail, listName, draftName)
	if err != nil {
		return nil, classify("Failed to fetch draft", err)
	}

	v := d.View()
	return &v, nil
}

// UpsertLinksAndMessages replaces the draft's links and messages wholesale,
// creating the draft on first use. Callers merge with the previous state.
func (s *DraftService) UpsertLinksAndMessages(ctx context.Context, owner user.Owner, listName, draftName string, links, messages []string) error {
	if err := validateDraftKey(owner.Email, listName, draftName); err != nil {
		return err
	}
	links, err := validation.NormalizeLinks(links)
	if err != nil {
		return err
	}
	messages, err = validation.NormalizeMessages(messages)
	if err != nil {
		return err
	}
	if err := s.requireList(ctx, owner.Email, listName); err != nil {
		return err
	}

	return s.upsert(ctx, owner, listName, draftName,
		list.Items{Links: links, Messages: messages},
		draft.ReplaceItems{Links: links, Messages: messages})
}

// AddImage adds an image to the draft unless the same name and url are
// already staged, creating the draft on first use.
func (s *DraftService) AddImage(ctx context.Context, owner user.Owner, listName, draftName string, img list.Image) error {
	if err := validateDraftKey(owner.Email, listName, draftName); err != nil {
		return err
	}
	if err := validateImage(img); err != nil {
		return err
	}

	return s.upsert(ctx, owner, listName, draftName,
		list.Items{Images: []list.Image{img}},
		draft.AddImage{Image: img})
}

// upsert updates the draft with patch, or creates it holding items when
// there is none yet. A concurrent create falls back to the update.
func (s *DraftService) upsert(ctx context.Context, owner user.Owner, listName, draftName string, items list.Items, patch draft.Patch) error {
	res, err := s.drafts.Update(ctx, owner.Email, listName, draftName, patch)
	if err != nil {
		s.log.Error("Failed to update draft", "owner_email", owner.Email, "list", listName, "error", err)
		return classify("Failed to update draft", err)
	}
	if res.Matched {
		s.log.Debug("Draft updated", "owner_email", owner.Email, "list", listName, "modified", res.Modified)
		return nil
	}

	err = s.drafts.Create(ctx, draft.New(owner, listName, items))
	if errors.Is(err, common.ErrConflict) {
		if _, err = s.drafts.Update(ctx, owner.Email, listName, draftName, patch); err != nil {
			return classify("Failed to update draft", err)
		}
		return nil
	}
	if err != nil {
		s.log.Error("Failed to create draft", "owner_email", owner.Email, "list", listName, "error", err)
		return classify("Failed to create draft", err)
	}

	s.log.Info("Draft created", "owner_email", owner.Email, "list", listName)
	return nil
}

// UploadImage stores the file under the draft folder and stages it. The
// object is removed again if staging fails.
func (s *DraftService) UploadImage(ctx context.Context, owner user.Owner, listName, imageName string, body io.Reader, size int64, contentType string) (*list.Image, error) {
	draftName := draft.NameFor(listName)
	if err := validateDraftKey(owner.Email, listName, draftName); err != nil {
		return nil, err
	}
	if !user.PolicyFor(owner.Type).CanUploadImages() {
		return nil, common.PreconditionFailed("Guests cannot upload images")
	}
	if err := validation.ValidateRequired(imageName, "imageName"); err != nil {
		return nil, err
	}
	if err := s.uploads.Check(size, contentType); err != nil {
		return nil, err
	}
	if err := s.requireList(ctx, owner.Email, listName); err != nil {
		return nil, err
	}

	img := list.Image{ImageName: imageName}
	sg := newSaga("draft_image_upload", s.log)
	err := sg.Step(ctx, "put_object",
		func(ctx context.Context) error {
			url, err := s.blobs.Put(ctx, blob.NewKey(blob.FolderDraft), body, size, contentType)
			if err != nil {
				return common.Upstream("Failed to upload image", err)
			}
			img.URL = url
			return nil
		},
		func(ctx context.Context) error { return s.blobs.Delete(ctx, img.URL) })
	if err != nil {
		return nil, err
	}

	err = sg.Step(ctx, "stage_image",
		func(ctx context.Context) error { return s.AddImage(ctx, owner, listName, draftName, img) },
		nil)
	if err != nil {
		return nil, classify("Failed to stage image", err)
	}

	s.log.Info("Draft image uploaded", "owner_email", owner.Email, "list", listName, "image", imageName)
	return &img, nil
}

// DeleteLinkItem removes one occurrence of link from the draft
func (s *DraftService) DeleteLinkItem(ctx context.Context, ownerEmail, listName, draftName, link string) error {
	if err := validation.ValidateRequired(link, "link"); err != nil {
		return err
	}
	return s.pull(ctx, ownerEmail, listName, draftName,
		func(d *draft.Draft) bool { return slices.Contains(d.Links, link) },
		draft.PullLink{Link: link}, "Link not found in draft")
}

// DeleteMessageItem removes one occurrence of message from the draft
func (s *DraftService) DeleteMessageItem(ctx context.Context, ownerEmail, listName, draftName, message string) error {
	if err := validation.ValidateRequired(message, "message"); err != nil {
		return err
	}
	return s.pull(ctx, ownerEmail, listName, draftName,
		func(d *draft.Draft) bool { return slices.Contains(d.Messages, message) },
		draft.PullMessage{Message: message}, "Message not found in draft")
}

// DeleteImage removes the image from the draft, then deletes its object.
// A failed object delete is reported even though the draft already changed.
func (s *DraftService) DeleteImage(ctx context.Context, ownerEmail, listName, draftName string, img list.Image) error {
	if err := validateImage(img); err != nil {
		return err
	}
	err := s.pull(ctx, ownerEmail, listName, draftName,
		func(d *draft.Draft) bool { return slices.Contains(d.Images, img) },
		draft.PullImage{Image: img}, "Image not found in draft")
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, img.URL); err != nil {
		s.log.Error("Image removed from draft but object delete failed", "owner_email", ownerEmail, "list", listName, "url", img.URL, "error", err)
		return classify("Image removed from draft but could not be deleted from storage", err)
	}
	return nil
}

func (s *DraftService) pull(ctx context.Context, ownerEmail, listName, draftName string, present func(*draft.Draft) bool, patch draft.Patch, missing string) error {
	if err := validateDraftKey(ownerEmail, listName, draftName); err != nil {
		return err
	}

	d, err := s.drafts.Get(ctx, ownerEmail, listName, draftName)
	if err != nil {
		return classify("Failed to fetch draft", err)
	}
	if !present(d) {
		return common.NotFound(missing)
	}

	res, err := s.drafts.Update(ctx, ownerEmail, listName, draftName, patch)
	if err != nil {
		s.log.Error("Failed to remove draft item", "owner_email", ownerEmail, "list", listName, "error", err)
		return classify("Failed to update draft", err)
	}
	if !res.Modified {
		return common.NotFound(missing)
	}
	return nil
}

// PromoteAndClear appends the staged items to the list and empties the
// draft. If the list is not modified the draft is left untouched. If the
// draft cannot be cleared the items are pulled back out of the list, and
// when that also fails the draft is marked inconsistent.
func (s *DraftService) PromoteAndClear(ctx context.Context, ownerEmail, listName, draftName string) error {
	if err := validateDraftKey(ownerEmail, listName, draftName); err != nil {
		return err
	}

	d, err := s.drafts.Get(ctx, ownerEmail, listName, draftName)
	if err != nil {
		return classify("Failed to fetch draft", err)
	}
	items := d.Items()
	if items.IsEmpty() {
		return common.PreconditionFailed("Draft has no items to add")
	}

	sg := newSaga("promote_and_clear", s.log.With("owner_email", ownerEmail, "list", listName))
	err = sg.Step(ctx, "append_to_list",
		func(ctx context.Context) error {
			res, err := s.lists.Update(ctx, ownerEmail, listName, list.Push{Items: items})
			if err != nil {
				return err
			}
			if !res.Matched {
				return common.NotFound("List not found")
			}
			if !res.Modified {
				return common.Upstream("List was not updated", nil)
			}
			return nil
		},
		func(ctx context.Context) error {
			res, err := s.lists.Update(ctx, ownerEmail, listName, list.PullOnce{Items: items})
			if err != nil {
				return err
			}
			if !res.Modified {
				return errors.New("promoted items were no longer in the list")
			}
			return nil
		})
	if err != nil {
		return classify("Failed to add draft items to list", err)
	}

	err = sg.Step(ctx, "clear_draft",
		func(ctx context.Context) error {
			res, err := s.drafts.Update(ctx, ownerEmail, listName, draftName, draft.Clear{})
			if err != nil {
				return err
			}
			if !res.Matched {
				return common.NotFound("Draft not found")
			}
			return nil
		},
		nil)
	if err != nil {
		if errors.Is(err, ErrCompensationFailed) {
			s.markInconsistent(ctx, ownerEmail, listName, draftName)
		}
		return common.Upstream("Failed to clear draft", err)
	}

	s.log.Info("Draft promoted", "owner_email", ownerEmail, "list", listName, "items", items.Count())
	return nil
}

func (s *DraftService) markInconsistent(ctx context.Context, ownerEmail, listName, draftName string) {
	ctx = context.WithoutCancel(ctx)
	if _, err := s.drafts.Update(ctx, ownerEmail, listName, draftName, draft.MarkInconsistent{}); err != nil {
		s.log.Error("Failed to mark draft inconsistent", "owner_email", ownerEmail, "list", listName, "error", err)
		return
	}
	s.log.Warn("Draft marked inconsistent", "owner_email", ownerEmail, "list", listName)
}

func (s *DraftService) requireList(ctx context.Context, ownerEmail, listName string) error {
	if _, err := s.lists.GetByName(ctx, ownerEmail, listName); err != nil {
		return classify("Failed to fetch list", err)
	}
	return nil
}

func validateImage(img list.Image) error {
	if err := validation.ValidateRequired(img.ImageName, "imageName"); err != nil {
		return err
	}
	return validation.ValidateRequired(img.URL, "url")
}
