package wrap

import "strings"

// Cloudflare builds wrangler operations. Wrangler is the argv prefix that
// runs wrangler, typically exec.Wrangler().
type Cloudflare struct {
	Wrangler []string
}

func (c Cloudflare) op(name string, args ...string) Op {
	prefix := c.Wrangler
	if len(prefix) == 0 {
		prefix = []string{"wrangler"}
	}
	argv := append(append([]string(nil), prefix[1:]...), args...)
	return Op{Name: name, Tool: prefix[0], Args: argv}
}

func withEnv(args []string, env string) []string {
	if env != "" {
		args = append(args, "--env", env)
	}
	return args
}

// Deploy publishes the worker. dryRun builds without uploading.
func (c Cloudflare) Deploy(env string, dryRun bool) Op {
	args := withEnv([]string{"deploy"}, env)
	if dryRun {
		args = append(args, "--dry-run")
	}
	return c.op("deploy", args...)
}

// SecretSet stores a worker secret. The value travels on stdin so it never
// appears in the process list.
func (c Cloudflare) SecretSet(name, value, env string) (Op, error) {
	if name == "" {
		return Op{}, usagef("secret name is required")
	}
	if value == "" {
		return Op{}, usagef("secret value is required")
	}
	op := c.op("secret_set", withEnv([]string{"secret", "put", name}, env)...)
	op.Stdin = value
	return op, nil
}

// SecretDelete removes a worker secret, answering wrangler's own prompt.
func (c Cloudflare) SecretDelete(name, env string) (Op, error) {
	if name == "" {
		return Op{}, usagef("secret name is required")
	}
	op := c.op("secret_delete", withEnv([]string{"secret", "delete", name}, env)...)
	op.Stdin = "y\n"
	return op, nil
}

// KVPut writes a key in the namespace bound as binding.
func (c Cloudflare) KVPut(binding, key, value string) (Op, error) {
	if binding == "" || key == "" {
		return Op{}, usagef("KV binding and key are required")
	}
	return c.op("kv_put", "kv", "key", "put", key, value, "--binding", binding), nil
}

// KVDelete removes a key from the namespace bound as binding.
func (c Cloudflare) KVDelete(binding, key string) (Op, error) {
	if binding == "" || key == "" {
		return Op{}, usagef("KV binding and key are required")
	}
	return c.op("kv_delete", "kv", "key", "delete", key, "--binding", binding), nil
}

func validObjectPath(p string) error {
	bucket, key, ok := strings.Cut(p, "/")
	if !ok || bucket == "" || key == "" {
		return usagef("object path must be bucket/key, got %q", p)
	}
	return nil
}

// R2Put uploads file to bucket/key.
func (c Cloudflare) R2Put(objectPath, file string) (Op, error) {
	if err := validObjectPath(objectPath); err != nil {
		return Op{}, err
	}
	if file == "" {
		return Op{}, usagef("file to upload is required")
	}
	return c.op("r2_put", "r2", "object", "put", objectPath, "--file", file), nil
}

// R2Delete removes bucket/key.
func (c Cloudflare) R2Delete(objectPath string) (Op, error) {
	if err := validObjectPath(objectPath); err != nil {
		return Op{}, err
	}
	return c.op("r2_delete", "r2", "object", "delete", objectPath), nil
}

// R2BucketCreate creates a bucket.
func (c Cloudflare) R2BucketCreate(bucket string) (Op, error) {
	if bucket == "" || strings.Contains(bucket, "/") {
		return Op{}, usagef("bucket name is required and may not contain '/'")
	}
	return c.op("r2_bucket_create", "r2", "bucket", "create", bucket), nil
}

// R2BucketDelete removes an empty bucket.
func (c Cloudflare) R2BucketDelete(bucket string) (Op, error) {
	if bucket == "" || strings.Contains(bucket, "/") {
		return Op{}, usagef("bucket name is required and may not contain '/'")
	}
	return c.op("r2_bucket_delete", "r2", "bucket", "delete", bucket), nil
}
