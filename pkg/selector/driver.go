package selector

import "context"

// Run executes requests one at a time until the chain settles.
// It returns early with ctx.Err() when the context is cancelled.
func (s *Selector) Run(ctx context.Context, f Fetcher, req *Request) error {
	for req != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := f.Fetch(ctx, *req)
		req = s.Deliver(*req, res)
	}
	return nil
}

// Load starts the selector and runs the initial chain to completion.
func (s *Selector) Load(ctx context.Context, f Fetcher) error {
	req, err := s.Start()
	if err != nil {
		return err
	}
	return s.Run(ctx, f, req)
}
