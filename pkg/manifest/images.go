package manifest

import (
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/mlopslab/mlopsctl/pkg/utils"
	kubeapps "k8s.io/api/apps/v1"
	kubecore "k8s.io/api/core/v1"
)

// ImageRef is a container image reference found in a manifest.
type ImageRef struct {
	Repository string
	Tag        string
}

func (i ImageRef) String() string {
	return fmt.Sprintf("%s:%s", i.Repository, i.Tag)
}

// Images collects and validates the container image references of
// every Deployment in objects.
//
// Parsing follows the docker image tag spec. A reference that does not
// parse (for example, a bad --version value substituted into the
// template) fails before anything is sent to the cluster.
func Images(objects []Object) ([]ImageRef, error) {
	refs := []ImageRef{}
	for _, o := range objects {
		depl, ok := o.Resource.(*kubeapps.Deployment)
		if !ok {
			continue
		}
		found, err := utils.MapUntilError(
			depl.Spec.Template.Spec.Containers,
			func(c kubecore.Container) (ImageRef, error) {
				ref, err := name.NewTag(c.Image, name.WithDefaultRegistry(""), name.WithDefaultTag("latest"))
				if err != nil {
					return ImageRef{}, fmt.Errorf(
						"invalid image reference %q in %s: %w", c.Image, o.Source, err,
					)
				}
				return ImageRef{
					Repository: ref.Repository.Name(),
					Tag:        ref.TagStr(),
				}, nil
			},
		)
		if err != nil {
			return nil, err
		}
		refs = append(refs, found...)
	}
	return refs, nil
}
