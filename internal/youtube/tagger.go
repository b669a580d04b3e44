package youtube

import (
	"os"

	"github.com/bogem/id3v2"
)

// Metadata is what gets written into an extracted MP3.
type Metadata struct {
	Title   string
	Artist  string
	Album   string
	Year    string
	Comment string // usually the source URL
}

// Tagger writes ID3 tags to MP3 files.
type Tagger struct {
	// ModifyTags turns text frames on; cover art is written regardless.
	ModifyTags bool
}

// NewTagger creates a Tagger.
func NewTagger(modifyTags bool) *Tagger {
	return &Tagger{ModifyTags: modifyTags}
}

// SaveTags writes meta and, when cover is not nil, a JPEG front cover to the
// file at path. Existing cover pictures are replaced.
func (t *Tagger) SaveTags(path string, meta Metadata, cover []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		tag = id3v2.NewEmptyTag()
	}
	defer tag.Close()

	if t.ModifyTags {
		setText(tag, meta)
	}
	if cover != nil {
		setCover(tag, cover)
	}

	return tag.Save()
}

func setText(tag *id3v2.Tag, meta Metadata) {
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if meta.Title != "" {
		tag.SetTitle(meta.Title)
	}
	if meta.Artist != "" {
		tag.SetArtist(meta.Artist)
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, meta.Artist)
	}
	if meta.Album != "" {
		tag.SetAlbum(meta.Album)
	}
	if meta.Year != "" {
		tag.SetYear(meta.Year)
	}
	if meta.Comment != "" {
		tag.DeleteFrames(tag.CommonID("Comments"))
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Text:     meta.Comment,
		})
	}
}

func setCover(tag *id3v2.Tag, cover []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     cover,
	})
}
