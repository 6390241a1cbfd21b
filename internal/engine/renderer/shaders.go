package renderer

// chunkVertexShader unpacks the 64-bit vertex word uploaded as a uvec2.
const chunkVertexShader = `
#version 410 core

layout (location = 0) in uvec2 aPacked;

uniform mat4 uViewProj;
uniform vec3 uOrigin;
uniform vec3 uCamera;
uniform vec3 uPalette[32];

out vec3 vColor;
out vec2 vCell;
out float vDist;

const float faceShade[6] = float[6](0.80, 0.80, 1.00, 0.50, 0.65, 0.65);

void main() {
	uint lo = aPacked.x;
	uint hi = aPacked.y;

	vec3 pos = vec3(float(lo & 63u), float((lo >> 6u) & 63u), float((lo >> 12u) & 63u));
	uint face = (lo >> 18u) & 7u;
	uint id = (lo >> 21u) & 31u;
	float u = float((lo >> 26u) & 1u);
	float v = float((lo >> 27u) & 1u);
	uint w = (lo >> 28u) | ((hi & 3u) << 4u);
	uint h = (hi >> 2u) & 63u;

	vec3 world = uOrigin + pos;
	vColor = uPalette[id] * faceShade[face];
	vCell = vec2(u * float(w), v * float(h));
	vDist = distance(world, uCamera);
	gl_Position = uViewProj * vec4(world, 1.0);
}
`

const chunkFragmentShader = `
#version 410 core

in vec3 vColor;
in vec2 vCell;
in float vDist;

uniform float uAlpha;
uniform vec3 uFogColor;
uniform float uFogDistance;

out vec4 FragColor;

void main() {
	vec2 g = abs(fract(vCell) - 0.5);
	float edge = step(0.47, max(g.x, g.y));
	vec3 c = vColor * (1.0 - 0.12 * edge);
	float fog = clamp(vDist / uFogDistance, 0.0, 1.0);
	FragColor = vec4(mix(c, uFogColor, fog * fog), uAlpha);
}
`
