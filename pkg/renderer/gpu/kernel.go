package gpu

// kernelSource is the compute shader for one full frame. One invocation
// traces one pixel with the same bounce loop as the CPU path: sky seeds
// the accumulator, each reflection averages the sphere color in, and the
// final hit before the budget runs out does not blend. Invocations past
// the framebuffer edge exit before writing.
const kernelSource = `#version 430

layout(local_size_x = 8, local_size_y = 8) in;

layout(binding = 0, rgba8) uniform writeonly image2D destImage;

// One sphere is 8 floats: center.xyz, radius, color.rgba
layout(std430, binding = 1) buffer SphereBuffer {
	float sphereData[];
};

layout(std140, binding = 2) uniform CameraBlock {
	vec4 camOrigin;
	vec4 camLook;
	vec4 camUp;
};

layout(std430, binding = 3) buffer StatsBuffer {
	uint rayCount;
	uint bounceCount;
};

uniform int uWidth;
uniform int uHeight;
uniform int uMaxBounces;

const int SPHERE_STRIDE = 8;
const float VIEWPORT_HEIGHT = 2.0;
const float FOCAL_LENGTH = 1.0;

vec4 skyColor(vec3 dir) {
	vec3 unitDir = normalize(dir);
	float a = 0.5 * (unitDir.y + 1.0);
	return mix(vec4(1.0, 1.0, 1.0, 1.0), vec4(0.5, 0.7, 1.0, 1.0), a);
}

// hitSphere returns the near quadratic root, or a negative value on miss.
// Root selection and sign handling match the CPU tracer: the caller only
// accepts strictly positive distances.
float hitSphere(vec3 center, float radius, vec3 orig, vec3 dir) {
	vec3 oc = center - orig;
	float a = dot(dir, dir);
	float b = -2.0 * dot(dir, oc);
	float c = dot(oc, oc) - radius * radius;
	float disc = b * b - 4.0 * a * c;
	if (disc < 0.0) {
		return -1.0;
	}
	return (-b - sqrt(disc)) / (2.0 * a);
}

void main() {
	ivec2 pix = ivec2(gl_GlobalInvocationID.xy);
	if (pix.x >= uWidth || pix.y >= uHeight) {
		return;
	}

	float aspect = float(uWidth) / float(uHeight);
	float viewportWidth = aspect * VIEWPORT_HEIGHT;

	vec3 lookDir = normalize(camLook.xyz);
	vec3 horizontal = normalize(cross(camUp.xyz, -lookDir));
	vec3 vertical = normalize(cross(lookDir, horizontal));

	float u = (float(pix.x) / float(uWidth)) * viewportWidth - viewportWidth / 2.0;
	float v = (float(pix.y) / float(uHeight)) * VIEWPORT_HEIGHT - VIEWPORT_HEIGHT / 2.0;

	vec3 orig = camOrigin.xyz;
	vec3 dir = u * horizontal + v * vertical + FOCAL_LENGTH * lookDir;

	vec4 accumulated = skyColor(dir);
	int remaining = uMaxBounces;
	int bounces = 0;
	int sphereCount = sphereData.length() / SPHERE_STRIDE;

	while (true) {
		vec3 unitDir = normalize(dir);

		float nearest = 0.0;
		int nearestIndex = -1;
		for (int i = 0; i < sphereCount; i++) {
			int base = i * SPHERE_STRIDE;
			float radius = sphereData[base + 3];
			if (radius <= 0.0) {
				continue;
			}
			vec3 center = vec3(sphereData[base], sphereData[base + 1], sphereData[base + 2]);
			float t = hitSphere(center, radius, orig, unitDir);
			if (t > 0.0 && (nearestIndex < 0 || t < nearest)) {
				nearest = t;
				nearestIndex = i;
			}
		}

		remaining--;
		if (nearestIndex < 0 || remaining == 0) {
			break;
		}

		int base = nearestIndex * SPHERE_STRIDE;
		vec4 color = vec4(sphereData[base + 4], sphereData[base + 5],
			sphereData[base + 6], sphereData[base + 7]);
		accumulated = (accumulated + color) * 0.5;
		bounces++;

		vec3 center = vec3(sphereData[base], sphereData[base + 1], sphereData[base + 2]);
		vec3 hitPoint = orig + unitDir * nearest;
		vec3 normal = normalize(hitPoint - center);
		dir = dir - 2.0 * dot(dir, normal) * normal;
		orig = hitPoint;
	}

	atomicAdd(rayCount, uint(bounces + 1));
	atomicAdd(bounceCount, uint(bounces));

	imageStore(destImage, pix, accumulated);
}
`
