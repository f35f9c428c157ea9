package testrunaggregatorlib

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
)

type gcsSource struct {
	gcsClient     *storage.Client
	gcsBucketName string
	prefix        string
}

// NewGCSSource reads runner files stored directly under prefix in a bucket.
// Objects in deeper "directories" are ignored, like subdirectories of a local source.
func NewGCSSource(gcsClient *storage.Client, gcsBucketName, prefix string) ResultSource {
	return &gcsSource{
		gcsClient:     gcsClient,
		gcsBucketName: gcsBucketName,
		prefix:        prefix,
	}
}

func (s *gcsSource) List(ctx context.Context) ([]string, error) {
	query := &storage.Query{
		Prefix:    s.prefix,
		Delimiter: "/",
	}
	// Only retrieve the name for performance
	if err := query.SetAttrSelection([]string{"Name"}); err != nil {
		return nil, err
	}

	it := s.gcsClient.Bucket(s.gcsBucketName).Objects(ctx, query)
	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", s, err)
		}
		// with a delimiter set, "directories" come back as prefix-only entries
		if len(attrs.Name) == 0 {
			continue
		}
		name := strings.TrimPrefix(attrs.Name, s.prefix)
		if !IsRunnerFile(name) {
			logrus.WithField("object", attrs.Name).Debug("Ignoring object that is not a runner result file")
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *gcsSource) Read(ctx context.Context, name string) ([]byte, error) {
	objectName := s.prefix + name
	reader, err := s.gcsClient.Bucket(s.gcsBucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", s.gcsBucketName, objectName, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", s.gcsBucketName, objectName, err)
	}
	return data, nil
}

func (s *gcsSource) String() string {
	return fmt.Sprintf("%s%s/%s", gcsScheme, s.gcsBucketName, s.prefix)
}
