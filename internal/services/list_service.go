package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
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

// ItemKind selects links or messages
type ItemKind string

const (
	ItemLink    ItemKind = "link"
	ItemMessage ItemKind = "message"
)

// ParseItemKind converts a string to an ItemKind
func ParseItemKind(s string) (ItemKind, error) {
	switch ItemKind(s) {
	case ItemLink, ItemMessage:
		return ItemKind(s), nil
	default:
		return "", common.InvalidArgument(fmt.Sprintf("Unknown item kind: %s", s))
	}
}

// ListService is the List Manager
type ListService struct {
	lists   storage.ListRepository
	drafts  storage.DraftRepository
	blobs   blob.Store
	uploads UploadPolicy
	intn    func(n int) int
	log     *log.Logger
}

// NewListService creates a new list service
func NewListService(lists storage.ListRepository, drafts storage.DraftRepository, blobs blob.Store, uploads UploadPolicy) *ListService {
	return &ListService{
		lists:   lists,
		drafts:  drafts,
		blobs:   blobs,
		uploads: uploads,
		intn:    rand.IntN,
		log:     logger.Service("list"),
	}
}

// CreateOrAppend adds links and messages to the owner's list, creating it on
// first use. Entries already in the list are rejected with a Conflict.
func (s *ListService) CreateOrAppend(ctx context.Context, owner user.Owner, name string, links, messages []string) (*list.Public, error) {
	if err := validation.ValidateListKey(owner.Email, name); err != nil {
		return nil, err
	}
	links, err := validation.NormalizeLinks(links)
	if err != nil {
		return nil, err
	}
	messages, err = validation.NormalizeMessages(messages)
	if err != nil {
		return nil, err
	}
	links = dedupe(links)
	messages = dedupe(messages)
	policy := user.PolicyFor(owner.Type)

	existing, err := s.lists.GetByName(ctx, owner.Email, name)
	switch {
	case errors.Is(err, common.ErrNotFound):
		created, err := s.create(ctx, owner, policy, name, links, messages)
		if !errors.Is(err, common.ErrConflict) {
			return created, err
		}
		// Lost a race with a concurrent create; append to the winner.
		if existing, err = s.lists.GetByName(ctx, owner.Email, name); err != nil {
			return nil, classify("Failed to fetch list", err)
		}
	case err != nil:
		s.log.Error("Failed to fetch list", "owner_email", owner.Email, "name", name, "error", err)
		return nil, classify("Failed to fetch list", err)
	}

	return s.appendTo(ctx, policy, existing, links, messages)
}

func (s *ListService) create(ctx context.Context, owner user.Owner, policy user.Policy, name string, links, messages []string) (*list.Public, error) {
	count, err := s.lists.CountByOwner(ctx, owner.Email)
	if err != nil {
		return nil, classify("Failed to count lists", err)
	}
	if user.Exceeds(int(count)+1, policy.MaxLists()) {
		return nil, common.LimitExceeded(fmt.Sprintf("You can create at most %d lists", policy.MaxLists()))
	}
	if err := checkCaps(policy, len(links), len(messages)); err != nil {
		return nil, err
	}

	l := list.New(owner, name, links, messages, policy.InitialPaid())
	if err := s.lists.Create(ctx, l); err != nil {
		return nil, classify("Failed to create list", err)
	}

	s.log.Info("List created", "owner_email", owner.Email, "name", name, "paid", l.Paid)
	p := l.Public()
	return &p, nil
}

func (s *ListService) appendTo(ctx context.Context, policy user.Policy, l *list.List, links, messages []string) (*list.Public, error) {
	for _, link := range links {
		found, err := s.lists.HasEntry(ctx, l.OwnerEmail, l.Name, link)
		if err != nil {
			return nil, classify("Failed to check list entries", err)
		}
		if found {
			return nil, common.Conflict("Link already exists in this list.")
		}
	}
	for _, message := range messages {
		if slices.Contains(l.Messages, message) {
			return nil, common.Conflict("Message already exists in this list.")
		}
	}
	if err := checkCaps(policy, len(l.Links)+len(links), len(l.Messages)+len(messages)); err != nil {
		return nil, err
	}

	res, err := s.lists.Update(ctx, l.OwnerEmail, l.Name, list.AddToSet{Links: links, Messages: messages})
	if err != nil {
		s.log.Error("Failed to append to list", "owner_email", l.OwnerEmail, "name", l.Name, "error", err)
		return nil, classify("Failed to update list", err)
	}
	if !res.Matched {
		return nil, common.NotFound("List not found")
	}

	s.log.Info("List updated", "owner_email", l.OwnerEmail, "name", l.Name, "links", len(links), "messages", len(messages))
	return s.GetByName(ctx, l.OwnerEmail, l.Name)
}

func checkCaps(policy user.Policy, links, messages int) error {
	if user.Exceeds(links, policy.MaxLinks()) {
		return common.LimitExceeded(fmt.Sprintf("Guests can add at most %d links", policy.MaxLinks()))
	}
	if user.Exceeds(messages, policy.MaxMessages()) {
		return common.LimitExceeded(fmt.Sprintf("Guests can add at most %d messages", policy.MaxMessages()))
	}
	return nil
}

// RemoveItem removes every occurrence of a link or message
func (s *ListService) RemoveItem(ctx context.Context, ownerEmail, listName, item string, kind ItemKind) error {
	if err := validation.ValidateListKey(ownerEmail, listName); err != nil {
		return err
	}
	if err := validation.ValidateRequired(item, string(kind)); err != nil {
		return err
	}

	var patch list.Pull
	switch kind {
	case ItemLink:
		patch.Links = []string{item}
	case ItemMessage:
		patch.Messages = []string{item}
	default:
		return common.InvalidArgument(fmt.Sprintf("Unknown item kind: %s", kind))
	}

	res, err := s.lists.Update(ctx, ownerEmail, listName, patch)
	if err != nil {
		s.log.Error("Failed to remove list item", "owner_email", ownerEmail, "name", listName, "error", err)
		return classify("Failed to update list", err)
	}
	if !res.Modified {
		return common.NotFound("Item not found")
	}
	return nil
}

// RemoveImage removes the image matching name and url, then deletes its object
func (s *ListService) RemoveImage(ctx context.Context, ownerEmail, listName string, img list.Image) error {
	if err := validateImage(img); err != nil {
		return err
	}
	if _, err := s.GetByName(ctx, ownerEmail, listName); err != nil {
		return err
	}

	res, err := s.lists.Update(ctx, ownerEmail, listName, list.PullImage{Image: img})
	if err != nil {
		return classify("Failed to update list", err)
	}
	if !res.Modified {
		return common.NotFound("Image not found")
	}

	if err := s.blobs.Delete(ctx, img.URL); err != nil {
		s.log.Error("Image removed from list but object delete failed", "owner_email", ownerEmail, "name", listName, "url", img.URL, "error", err)
		return classify("Image removed from list but could not be deleted from storage", err)
	}
	return nil
}

// UploadImage stores the file under the images folder and attaches it to the
// list. The name must be unique within the list. The object is removed again
// if the list disappears before the image is attached.
func (s *ListService) UploadImage(ctx context.Context, owner user.Owner, listName, imageName string, body io.Reader, size int64, contentType string) (*list.Image, error) {
	if err := validation.ValidateListKey(owner.Email, listName); err != nil {
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

	l, err := s.lists.GetByName(ctx, owner.Email, listName)
	if err != nil {
		return nil, classify("Failed to fetch list", err)
	}
	if l.HasImageName(imageName) {
		return nil, common.Conflict("An image with this name already exists in this list.")
	}

	img := list.Image{ImageName: imageName}
	sg := newSaga("list_image_upload", s.log)
	err = sg.Step(ctx, "put_object",
		func(ctx context.Context) error {
			url, err := s.blobs.Put(ctx, blob.NewKey(blob.FolderImages), body, size, contentType)
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

	err = sg.Step(ctx, "attach_image",
		func(ctx context.Context) error {
			res, err := s.lists.Update(ctx, owner.Email, listName, list.AddToSet{Images: []list.Image{img}})
			if err != nil {
				return err
			}
			if !res.Matched {
				return common.NotFound("List not found")
			}
			return nil
		},
		nil)
	if err != nil {
		return nil, classify("Failed to attach image", err)
	}

	s.log.Info("List image uploaded", "owner_email", owner.Email, "name", listName, "image", imageName)
	return &img, nil
}

// SetPaymentStatus overwrites the payment fields. Repeating the same payload
// leaves the list unchanged.
func (s *ListService) SetPaymentStatus(ctx context.Context, ownerEmail, listName string, status list.SetPayment) error {
	if err := validation.ValidateListKey(ownerEmail, listName); err != nil {
		return err
	}

	res, err := s.lists.Update(ctx, ownerEmail, listName, status)
	if err != nil {
		s.log.Error("Failed to set payment status", "owner_email", ownerEmail, "name", listName, "error", err)
		return classify("Failed to update payment status", err)
	}
	if !res.Matched {
		return common.NotFound("List not found")
	}

	s.log.Info("Payment status set", "owner_email", ownerEmail, "name", listName, "paid", status.Paid, "order_id", status.OrderID)
	return nil
}

// DeleteList removes the list and its drafts, then every image object they
// referenced. Row deletes are undone if a later row delete fails. Object
// deletes cannot be undone; their failures are reported after the rows are gone.
func (s *ListService) DeleteList(ctx context.Context, ownerEmail, listName string) error {
	if err := validation.ValidateListKey(ownerEmail, listName); err != nil {
		return err
	}

	l, err := s.lists.GetByName(ctx, ownerEmail, listName)
	if err != nil {
		return classify("Failed to fetch list", err)
	}
	d, err := s.drafts.Get(ctx, ownerEmail, listName, draft.NameFor(listName))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		s.log.Error("Failed to fetch draft for deletion", "owner_email", ownerEmail, "name", listName, "error", err)
		return classify("Failed to fetch draft", err)
	}

	sg := newSaga("delete_list", s.log.With("owner_email", ownerEmail, "name", listName))
	err = sg.Step(ctx, "delete_list_row",
		func(ctx context.Context) error { return s.lists.Delete(ctx, ownerEmail, listName) },
		func(ctx context.Context) error { return s.lists.Create(ctx, l.Clone()) })
	if err != nil {
		return classify("Failed to delete list", err)
	}

	if d != nil {
		err = sg.Step(ctx, "delete_draft_rows",
			func(ctx context.Context) error {
				_, err := s.drafts.DeleteAll(ctx, ownerEmail, listName)
				return err
			},
			nil)
		if err != nil {
			return classify("Failed to delete draft", err)
		}
	}

	images := slices.Clone([]list.Image(l.Images))
	if d != nil {
		images = append(images, d.Images...)
	}

	var errs []error
	for _, img := range images {
		if err := s.blobs.Delete(ctx, img.URL); err != nil {
			s.log.Error("Failed to delete image object", "owner_email", ownerEmail, "name", listName, "url", img.URL, "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return common.Upstream(fmt.Sprintf("List deleted but %d images could not be removed from storage", len(errs)), errors.Join(errs...))
	}

	s.log.Info("List deleted", "owner_email", ownerEmail, "name", listName, "images", len(images))
	return nil
}

// GetByName returns the public projection of one list
func (s *ListService) GetByName(ctx context.Context, ownerEmail, name string) (*list.Public, error) {
	if err := validation.ValidateListKey(ownerEmail, name); err != nil {
		return nil, err
	}

	l, err := s.lists.GetByName(ctx, ownerEmail, name)
	if err != nil {
		return nil, classify("Failed to fetch list", err)
	}
	p := l.Public()
	return &p, nil
}

// GetAll returns the public projection of every list of the owner
func (s *ListService) GetAll(ctx context.Context, ownerEmail string) ([]list.Public, error) {
	if err := validation.ValidateRequired(ownerEmail, "ownerEmail"); err != nil {
		return nil, err
	}

	lists, err := s.lists.GetAllByOwner(ctx, ownerEmail)
	if err != nil {
		s.log.Error("Failed to fetch lists", "owner_email", ownerEmail, "error", err)
		return nil, classify("Failed to fetch lists", err)
	}

	out := make([]list.Public, 0, len(lists))
	for _, l := range lists {
		out = append(out, l.Public())
	}
	return out, nil
}

// GetImages returns the images attached to a list
func (s *ListService) GetImages(ctx context.Context, ownerEmail, name string) ([]list.Image, error) {
	p, err := s.GetByName(ctx, ownerEmail, name)
	if err != nil {
		return nil, err
	}
	return p.Images, nil
}

// PublicView returns a list for its share page. Only paid lists are visible.
func (s *ListService) PublicView(ctx context.Context, ownerEmail, name string) (*list.Public, error) {
	p, err := s.GetByName(ctx, ownerEmail, name)
	if err != nil {
		return nil, err
	}
	if !p.Paid {
		return nil, common.PreconditionFailed("This list has not been published yet")
	}
	return p, nil
}

// PickKind tells which kind of entry a Pick holds
type PickKind string

const (
	PickLink    PickKind = "link"
	PickMessage PickKind = "message"
	PickImage   PickKind = "image"
	PickNone    PickKind = "none"
)

// Pick is one random entry of a published list
type Pick struct {
	Kind    PickKind    `json:"kind"`
	Link    string      `json:"link,omitempty"`
	Message string      `json:"message,omitempty"`
	Image   *list.Image `json:"image,omitempty"`
}

// RandomItem picks a random non-empty kind, then a random entry of it
func (s *ListService) RandomItem(ctx context.Context, ownerEmail, name string) (*Pick, error) {
	p, err := s.PublicView(ctx, ownerEmail, name)
	if err != nil {
		return nil, err
	}

	var kinds []PickKind
	if len(p.Links) > 0 {
		kinds = append(kinds, PickLink)
	}
	if len(p.Messages) > 0 {
		kinds = append(kinds, PickMessage)
	}
	if len(p.Images) > 0 {
		kinds = append(kinds, PickImage)
	}
	if len(kinds) == 0 {
		return &Pick{Kind: PickNone}, nil
	}

	switch kind := kinds[s.intn(len(kinds))]; kind {
	case PickLink:
		return &Pick{Kind: kind, Link: p.Links[s.intn(len(p.Links))]}, nil
	case PickMessage:
		return &Pick{Kind: kind, Message: p.Messages[s.intn(len(p.Messages))]}, nil
	default:
		img := p.Images[s.intn(len(p.Images))]
		return &Pick{Kind: kind, Image: &img}, nil
	}
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
